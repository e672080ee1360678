package github

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"
)

// KVStore provides simple kv data storage.
type KVStore interface {
	ReadKey(key []byte) ([]byte, error)
	UpdateKey(key []byte, data []byte) error
}

// ConditionalDoer wraps HTTPDoer with etag-based conditional requests.
//
// A validated 304 does not count against the github rate limit, so reruns
// over a mostly unchanged catalog spend almost none of their quota. Data is
// still revalidated upstream on every request; nothing is served without a
// round trip.
type ConditionalDoer struct {
	doer  HTTPDoer
	store KVStore
	l     logrus.FieldLogger
}

// NewConditionalDoer creates new ConditionalDoer instance.
func NewConditionalDoer(doer HTTPDoer, store KVStore, l logrus.FieldLogger) *ConditionalDoer {
	return &ConditionalDoer{
		doer:  doer,
		store: store,
		l:     l,
	}
}

// Do executes the request with an If-None-Match header when a cached etag
// exists. On 304 the cached body is replayed as a 200 response. Store
// failures degrade to plain requests, they never fail the call.
func (d *ConditionalDoer) Do(r *http.Request) (*http.Response, error) {
	if r.Method != http.MethodGet {
		return d.doer.Do(r)
	}

	key := d.cacheKey(r)
	cached, err := d.readEntry(key)
	if err != nil {
		d.l.Warnf("reading conditional cache: %v", err)
	}
	if cached != nil {
		r.Header.Set("If-None-Match", cached.ETag)
	}

	resp, err := d.doer.Do(r)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusNotModified && cached != nil {
		resp.Body.Close()
		resp.StatusCode = http.StatusOK
		resp.Status = http.StatusText(http.StatusOK)
		resp.Body = io.NopCloser(bytes.NewReader(cached.Body))
		resp.ContentLength = int64(len(cached.Body))
		return resp, nil
	}

	if resp.StatusCode == http.StatusOK {
		if etag := resp.Header.Get("ETag"); etag != "" {
			body, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			if err != nil {
				return nil, fmt.Errorf("reading response body for caching: %w", err)
			}
			resp.Body = io.NopCloser(bytes.NewReader(body))
			if err := d.writeEntry(key, conditionalEntry{ETag: etag, Body: body}); err != nil {
				d.l.Warnf("updating conditional cache: %v", err)
			}
		}
	}

	return resp, nil
}

func (d *ConditionalDoer) readEntry(key []byte) (*conditionalEntry, error) {
	data, err := d.store.ReadKey(key)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}

	var entry conditionalEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("unmarshalling cache entry: %w", err)
	}
	if entry.ETag == "" {
		return nil, nil
	}

	return &entry, nil
}

func (d *ConditionalDoer) writeEntry(key []byte, entry conditionalEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshalling cache entry: %w", err)
	}

	return d.store.UpdateKey(key, data)
}

func (d *ConditionalDoer) cacheKey(r *http.Request) []byte {
	return []byte("etag/" + r.URL.String())
}

type conditionalEntry struct {
	ETag string `json:"etag"`
	Body []byte `json:"body"`
}
