package report

import (
	"errors"
	"time"

	"github.com/iexc-go/iexc/internal/history"
	"github.com/iexc-go/iexc/internal/httpclient"
	"github.com/iexc-go/iexc/internal/iex"
)

var fixedTime = time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC)

func newTestResponse() *httpclient.Response {
	return &httpclient.Response{
		Protocol:      "HTTP/1.1",
		StatusCode:    200,
		StatusMessage: "OK",
		Headers: []httpclient.Header{
			{Name: "content-type", Value: "text/plain"},
			{Name: "content-length", Value: "12"},
		},
		Body: "Hello world!",
	}
}

func newTestResults() []iex.Result {
	return []iex.Result{
		{Symbol: "aapl", Quote: &iex.Quote{Symbol: "AAPL", Price: 123.45, Endpoint: iex.Sandbox, FetchedAt: fixedTime}},
		{Symbol: "nope", Err: errors.New("iex: api returned 404 Not Found: Unknown symbol")},
	}
}

func newTestRecords() []*history.Record {
	return []*history.Record{
		{ID: "id-1", Symbol: "AAPL", Price: 123.45, Endpoint: "sandbox", FetchedAt: fixedTime},
		{ID: "id-2", Symbol: "MSFT", Price: 300, Endpoint: "production", FetchedAt: fixedTime.Add(-time.Hour)},
	}
}
