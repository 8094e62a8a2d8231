package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaschooldata/internal/config"
	"vaschooldata/internal/errors"
)

func testClient() *Client {
	return NewClient(config.FetchConfig{
		Timeout:        5 * time.Second,
		Retries:        1,
		RequestsPerSec: 1000,
		Burst:          1000,
		UserAgent:      "vaschooldata-test",
	}, nil)
}

// swapMirrors points the mirror lists at a test server for the duration of
// one test.
func swapMirrors(t *testing.T, enrollment, graduation []string) {
	t.Helper()
	oldEnr, oldGrad := enrollmentMirrors, graduationMirrors
	enrollmentMirrors, graduationMirrors = enrollment, graduation
	t.Cleanup(func() {
		enrollmentMirrors, graduationMirrors = oldEnr, oldGrad
	})
}

const enrollmentCSV = "Div Num,Div Name,Total\n001,Accomack County,100\n"
const cohortCSV = "Div Num,Cohort,Standard Diploma\n001,200,180\n"

func TestEnrollmentFetchesBothLevels(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.Write([]byte(enrollmentCSV))
	}))
	defer srv.Close()
	swapMirrors(t, []string{srv.URL + "/membership/%d/%s.csv"}, nil)

	school, district, err := testClient().Enrollment(context.Background(), 2019)
	require.NoError(t, err)

	assert.Len(t, school.Rows, 1)
	assert.Len(t, district.Rows, 1)
	require.Len(t, paths, 2)
	assert.Equal(t, "/membership/2019/school.csv", paths[0])
	assert.Equal(t, "/membership/2019/division.csv", paths[1])
}

func TestGraduation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(cohortCSV))
	}))
	defer srv.Close()
	swapMirrors(t, nil, []string{srv.URL + "/cohort/%d.csv"})

	table, err := testClient().Graduation(context.Background(), 2015)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "200", table.Rows[0]["Cohort"])
}

// The first mirror 404ing must fall through to the next without retrying the
// dead one.
func TestFetchFallsThroughMirrors(t *testing.T) {
	var deadHits int32
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&deadHits, 1)
		http.NotFound(w, r)
	}))
	defer dead.Close()
	live := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(cohortCSV))
	}))
	defer live.Close()
	swapMirrors(t, nil, []string{dead.URL + "/cohort/%d.csv", live.URL + "/cohort/%d.csv"})

	table, err := testClient().Graduation(context.Background(), 2015)
	require.NoError(t, err)
	assert.Len(t, table.Rows, 1)
	assert.Equal(t, int32(1), atomic.LoadInt32(&deadHits), "404 is terminal for a mirror, never retried")
}

func TestFetchAllMirrorsFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()
	swapMirrors(t, nil, []string{srv.URL + "/a/%d.csv", srv.URL + "/b/%d.csv"})

	_, err := testClient().Graduation(context.Background(), 2015)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeNetwork))
}

func TestFetchRetriesTransientFailures(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(cohortCSV))
	}))
	defer srv.Close()
	swapMirrors(t, nil, []string{srv.URL + "/cohort/%d.csv"})

	table, err := testClient().Graduation(context.Background(), 2015)
	require.NoError(t, err)
	assert.Len(t, table.Rows, 1)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestFetchSetsUserAgent(t *testing.T) {
	var ua string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
		w.Write([]byte(cohortCSV))
	}))
	defer srv.Close()
	swapMirrors(t, nil, []string{srv.URL + "/cohort/%d.csv"})

	_, err := testClient().Graduation(context.Background(), 2015)
	require.NoError(t, err)
	assert.Equal(t, "vaschooldata-test", ua)
}

func TestFetchHonorsContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	swapMirrors(t, nil, []string{srv.URL + "/cohort/%d.csv"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testClient().Graduation(ctx, 2015)
	assert.Error(t, err)
}
