// Package testutil provides shared test fixtures and assertions.
package testutil

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
)

// Plateau returns fresh copies of the six-sample step series used across
// the curve, panel and server tests. With sigma 0 its spline has
// inflections at 17/12 and 43/12, both with |grad| = 1.1083333333333334.
func Plateau() (x, y []float64) {
	return []float64{0, 1, 2, 3, 4, 5}, []float64{0, 0, 1, 1, 0, 0}
}

// PlateauInflections are the sigma-0 inflection points of Plateau.
var PlateauInflections = []float64{17.0 / 12, 43.0 / 12}

// PlateauMaxGrad is |grad| at both plateau inflections.
const PlateauMaxGrad = 1.1083333333333334

// AssertStatusCode checks that the response status code matches expected.
func AssertStatusCode(t testing.TB, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("status code = %d, want %d", got, want)
	}
}

// AssertFloatsNear fails unless got and want have equal length and every
// pair differs by at most tol. NaN matches only NaN.
func AssertFloatsNear(t testing.TB, got, want []float64, tol float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d (got %v, want %v)", len(got), len(want), got, want)
	}
	for i := range want {
		g, w := got[i], want[i]
		if math.IsNaN(w) {
			if !math.IsNaN(g) {
				t.Errorf("[%d] = %g, want NaN", i, g)
			}
			continue
		}
		if math.IsNaN(g) || math.Abs(g-w) > tol {
			t.Errorf("[%d] = %.15g, want %.15g (tol %g)", i, g, w, tol)
		}
	}
}

// NewJSONRequest builds a test request whose body is v encoded as JSON.
func NewJSONRequest(t testing.TB, method, path string, v interface{}) *http.Request {
	t.Helper()
	body, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to encode request body: %v", err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// DecodeJSON decodes a recorded response body into a value of type T.
func DecodeJSON[T any](t testing.TB, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return v
}
