package e2e

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// fakeBAN answers /search/ the way the national address API does for
// municipality queries: one feature per postal code of the commune.
type fakeBAN struct {
	server *httptest.Server

	mu      sync.Mutex
	byCode  map[string]banCommune
	failing bool
}

type banCommune struct {
	code, name, context string
	postalCodes         []string
}

type banFeature struct {
	Properties banProperties `json:"properties"`
}

type banProperties struct {
	CityCode string `json:"citycode"`
	City     string `json:"city"`
	Context  string `json:"context"`
	Postcode string `json:"postcode"`
}

func newFakeBAN() *fakeBAN {
	b := &fakeBAN{byCode: map[string]banCommune{}}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /search/", b.search)
	b.server = httptest.NewServer(mux)
	return b
}

func (b *fakeBAN) URL() string { return b.server.URL }

func (b *fakeBAN) Close() { b.server.Close() }

func (b *fakeBAN) add(code, name, context string, postalCodes []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.byCode[strings.ToUpper(code)] = banCommune{code: strings.ToUpper(code), name: name, context: context, postalCodes: postalCodes}
}

func (b *fakeBAN) setFailing(failing bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failing = failing
}

func (b *fakeBAN) search(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.failing {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}

	q := r.URL.Query()
	var matches []banCommune
	if code := q.Get("citycode"); code != "" {
		if c, ok := b.byCode[strings.ToUpper(code)]; ok {
			matches = append(matches, c)
		}
	} else {
		needle := strings.ToLower(strings.TrimSpace(q.Get("q")))
		for _, c := range b.byCode {
			if needle != "" && strings.Contains(strings.ToLower(c.name), needle) {
				matches = append(matches, c)
			}
		}
	}

	features := []banFeature{}
	for _, c := range matches {
		for _, pc := range c.postalCodes {
			features = append(features, banFeature{Properties: banProperties{
				CityCode: c.code,
				City:     c.name,
				Context:  c.context,
				Postcode: pc,
			}})
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"type":     "FeatureCollection",
		"features": features,
	})
}
