package mesonet

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

type recordingObserver struct {
	mu    sync.Mutex
	kinds []ResultKind
}

func (o *recordingObserver) ObserveRequest(endpoint string, kind ResultKind, elapsed time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.kinds = append(o.kinds, kind)
}

func TestStations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/stations" {
			t.Errorf("path = %q, want /stations", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q, want %q", got, "Bearer secret")
		}
		w.Write([]byte(`[
			{"station_id": "0115", "lat": 21.3, "lng": "-157.8", "status": "active"},
			{"station_id": "0520", "lat": null, "status": "inactive", "name": "extra field"}
		]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", nil)
	stations, err := c.Stations(context.Background())
	if err != nil {
		t.Fatalf("Stations() error = %v", err)
	}
	if len(stations) != 2 {
		t.Fatalf("len(stations) = %d, want 2", len(stations))
	}

	s := stations[0]
	if s.ID != "0115" || !s.Active() {
		t.Errorf("stations[0] = %+v, want active 0115", s)
	}
	if s.Lat == nil || *s.Lat != 21.3 {
		t.Errorf("stations[0].Lat = %v, want 21.3", s.Lat)
	}
	if s.Lon == nil || *s.Lon != -157.8 {
		t.Errorf("stations[0].Lon = %v, want -157.8", s.Lon)
	}
	if stations[1].Lat != nil || stations[1].Lon != nil {
		t.Errorf("stations[1] coordinates = %v,%v, want nil", stations[1].Lat, stations[1].Lon)
	}
	if stations[1].Active() {
		t.Errorf("stations[1].Active() = true, want false")
	}
}

func TestStationsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "bad", nil)
	stations, err := c.Stations(context.Background())
	if err == nil {
		t.Fatal("Stations() error = nil, want upstream error")
	}
	if stations != nil {
		t.Errorf("stations = %v, want nil", stations)
	}

	var upErr *UpstreamError
	if !errors.As(err, &upErr) {
		t.Fatalf("error %T is not *UpstreamError", err)
	}
	if upErr.StatusCode != http.StatusForbidden {
		t.Errorf("StatusCode = %d, want %d", upErr.StatusCode, http.StatusForbidden)
	}
}

func TestMeasurementsQuery(t *testing.T) {
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		want := map[string]string{
			"station_ids": "0115",
			"var_ids":     "WDrs_1_Avg,WS_1_Avg",
			"limit":       "2",
			"start_date":  "2025-03-01T12:00:00Z",
		}
		for k, v := range want {
			if got := q.Get(k); got != v {
				t.Errorf("query %s = %q, want %q", k, got, v)
			}
		}
		w.Write([]byte(`[
			{"station_id": "0115", "variable": "WS_1_Avg", "value": "3.2", "timestamp": "2025-03-02T10:00:00Z"},
			{"station_id": "0115", "variable": "WDrs_1_Avg", "value": 270, "timestamp": "2025-03-02T10:00:00Z"}
		]`))
	}))
	defer srv.Close()

	obs := &recordingObserver{}
	c := NewClient(srv.URL, "t", nil, WithObserver(obs))
	res := c.Measurements(context.Background(), Query{
		StationIDs: []string{"0115"},
		Variables:  []string{"WDrs_1_Avg", "WS_1_Avg"},
		Limit:      2,
		StartDate:  start,
	})
	if !res.OK() {
		t.Fatalf("Measurements() kind = %v, err = %v", res.Kind, res.Err)
	}
	if len(res.Samples) != 2 {
		t.Fatalf("len(samples) = %d, want 2", len(res.Samples))
	}
	if f, ok := res.Samples[0].Value.Float(); !ok || f != 3.2 {
		t.Errorf("samples[0].Value = %v,%v, want 3.2", f, ok)
	}
	if len(obs.kinds) != 1 || obs.kinds[0] != ResultOK {
		t.Errorf("observed kinds = %v, want [ok]", obs.kinds)
	}
}

func TestMeasurementsResultKinds(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    ResultKind
	}{
		{
			name: "empty list",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`[]`))
			},
			want: ResultOK,
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
			want: ResultUpstreamError,
		},
		{
			name: "object instead of list",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"error": "bad var_ids"}`))
			},
			want: ResultDataShapeError,
		},
		{
			name: "slow upstream",
			handler: func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(2 * time.Second):
				}
			},
			want: ResultTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := NewClient(srv.URL, "t", nil, WithTimeout(50*time.Millisecond))
			res := c.Measurements(context.Background(), Query{StationIDs: []string{"0115"}, Variables: []string{"BattVolt"}, Limit: 1})
			if res.Kind != tt.want {
				t.Errorf("kind = %v (err %v), want %v", res.Kind, res.Err, tt.want)
			}
			if tt.want != ResultOK && res.Err == nil {
				t.Errorf("err = nil for kind %v", res.Kind)
			}
		})
	}
}

func TestMeasurementsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(url, "t", nil)
	res := c.Measurements(context.Background(), Query{StationIDs: []string{"0115"}, Variables: []string{"BattVolt"}})
	if res.Kind != ResultTransportError {
		t.Errorf("kind = %v, want %v", res.Kind, ResultTransportError)
	}
}

func TestRequestInterval(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "t", nil, WithRequestInterval(40*time.Millisecond))
	start := time.Now()
	for i := 0; i < 3; i++ {
		c.Measurements(context.Background(), Query{StationIDs: []string{"0115"}, Variables: []string{"RHenc"}})
	}
	// first request is immediate, the next two wait one interval each
	if elapsed := time.Since(start); elapsed < 75*time.Millisecond {
		t.Errorf("3 requests took %v, want at least ~80ms", elapsed)
	}
}
