package github

import (
	"io"
	"net/http"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starlist/starlist/internal/mock"
)

func TestConditionalDoer(t *testing.T) {
	t.Parallel()

	store := &mock.KVStore{}
	doer := &mock.HTTPDoer{
		Statuses: []int{
			http.StatusOK,
			http.StatusNotModified,
			http.StatusOK,
		},
		Bodies: [][]byte{
			[]byte(`{"stargazers_count": 1}`),
			nil,
			[]byte(`{"stargazers_count": 2}`),
		},
		Headers: []http.Header{
			{"Etag": []string{`"v1"`}},
			{},
			{"Etag": []string{`"v2"`}},
		},
	}
	cond := NewConditionalDoer(doer, store, logrus.New())

	// First call: nothing cached, no validator sent, body stored.
	resp, err := cond.Do(newGetRequest(t))
	require.NoError(t, err)
	assert.Empty(t, doer.Responses[0].Request.Header.Get("If-None-Match"))
	assert.Equal(t, `{"stargazers_count": 1}`, readBody(t, resp))

	// Second call: validator sent, 304 replayed from cache as a 200.
	resp, err = cond.Do(newGetRequest(t))
	require.NoError(t, err)
	assert.Equal(t, `"v1"`, doer.Responses[1].Request.Header.Get("If-None-Match"))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `{"stargazers_count": 1}`, readBody(t, resp))

	// Third call: upstream changed, new body replaces the cached one.
	resp, err = cond.Do(newGetRequest(t))
	require.NoError(t, err)
	assert.Equal(t, `{"stargazers_count": 2}`, readBody(t, resp))

	entry, err := store.ReadKey([]byte("etag/https://fake/repos/a/b"))
	require.NoError(t, err)
	assert.Contains(t, string(entry), `v2`)
}

func TestConditionalDoerStoreFailuresDegrade(t *testing.T) {
	t.Parallel()

	store := &mock.KVStore{ReadErr: assert.AnError, UpdateErr: assert.AnError}
	doer := &mock.HTTPDoer{
		Statuses: []int{http.StatusOK},
		Bodies:   [][]byte{[]byte(`ok`)},
		Headers:  []http.Header{{"Etag": []string{`"v1"`}}},
	}
	cond := NewConditionalDoer(doer, store, logrus.New())

	resp, err := cond.Do(newGetRequest(t))
	require.NoError(t, err)
	assert.Equal(t, `ok`, readBody(t, resp))
}

func TestConditionalDoerSkipsNonGet(t *testing.T) {
	t.Parallel()

	store := &mock.KVStore{}
	doer := &mock.HTTPDoer{
		Statuses: []int{http.StatusOK},
		Bodies:   [][]byte{[]byte(`ok`)},
		Headers:  []http.Header{{"Etag": []string{`"v1"`}}},
	}
	cond := NewConditionalDoer(doer, store, logrus.New())

	req, err := http.NewRequest(http.MethodPost, "https://fake/repos/a/b", nil)
	require.NoError(t, err)
	_, err = cond.Do(req)
	require.NoError(t, err)

	entry, err := store.ReadKey([]byte("etag/https://fake/repos/a/b"))
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func newGetRequest(t *testing.T) *http.Request {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, "https://fake/repos/a/b", nil)
	require.NoError(t, err)
	return req
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}
