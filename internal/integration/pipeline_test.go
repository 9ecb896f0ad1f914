//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	csvadapter "github.com/couchcryptid/ballpark-weather-etl/internal/adapter/csv"
	kafkaadapter "github.com/couchcryptid/ballpark-weather-etl/internal/adapter/kafka"
	"github.com/couchcryptid/ballpark-weather-etl/internal/adapter/meteostat"
	"github.com/couchcryptid/ballpark-weather-etl/internal/adapter/sqlite"
	"github.com/couchcryptid/ballpark-weather-etl/internal/domain"
	"github.com/couchcryptid/ballpark-weather-etl/internal/observability"
	"github.com/couchcryptid/ballpark-weather-etl/internal/pipeline"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTopic = "stadium-daily-weather-test"

// fakeMeteostat serves the three Meteostat endpoints used by the client.
// Nearby always returns EMPTY then FULL; FULL has a reading for every day
// of the requested range at 0 °C. The override station OVR does the same.
func fakeMeteostat(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		q := r.URL.Query()
		switch r.URL.Path {
		case "/stations/nearby":
			fmt.Fprint(w, `{"data":[{"id":"EMPTY","distance":1200},{"id":"FULL","distance":5300}]}`)
		case "/stations/meta":
			fmt.Fprintf(w, `{"data":{"id":%q,"name":{"en":"Test"},"inventory":{"daily":{"start":"1990-01-01","end":"2030-12-31"}}}}`, q.Get("id"))
		case "/stations/daily":
			if q.Get("station") == "EMPTY" {
				fmt.Fprint(w, `{"data":[]}`)
				return
			}
			start, err := time.Parse(domain.DateLayout, q.Get("start"))
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			end, err := time.Parse(domain.DateLayout, q.Get("end"))
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			rng := domain.NewDateRange(start, end)
			var sb strings.Builder
			sb.WriteString(`{"data":[`)
			for i, d := range rng.Days() {
				if i > 0 {
					sb.WriteString(",")
				}
				fmt.Fprintf(&sb, `{"date":%q,"tavg":0,"tmin":-5,"tmax":5,"prcp":0.3,"snow":null,"wdir":180,"wspd":10,"wpgt":null,"pres":1013,"tsun":null}`,
					d.Format(domain.DateLayout))
			}
			sb.WriteString(`]}`)
			fmt.Fprint(w, sb.String())
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

// TestPipelineEndToEnd runs the full batch against a fake Meteostat API and
// real CSV, SQLite and Kafka sinks.
func TestPipelineEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	api := fakeMeteostat(t)
	metrics := observability.NewMetricsForTesting()
	logger := discardLogger()

	registry := domain.Registry{
		Locations: []domain.Location{
			{Name: "Kauffman Stadium", Lat: 39.051910, Lon: -94.480682},
			{Name: "Oracle Park", Lat: 37.778572, Lon: -122.389717},
		},
		Overrides: map[string]domain.StationID{"Oracle Park": "OVR"},
	}

	client := meteostat.NewClient(api.URL, "", 5*time.Second, metrics, logger)
	lookup := meteostat.NewCachedLookup(client, time.Hour, metrics)
	directory := meteostat.NewDirectory(lookup, 50, logger)
	resolver := pipeline.NewResolver(registry, directory, client, 10, metrics, logger)

	dir := t.TempDir()
	csvPath := filepath.Join(dir, "weather.csv")
	store, err := sqlite.NewStore(filepath.Join(dir, "weather.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	writer := kafkaadapter.NewWriter([]string{broker}, testTopic, logger)
	t.Cleanup(func() { _ = writer.Close() })

	sinks := []pipeline.Sink{
		{Name: "csv", Loader: csvadapter.NewWriter(csvPath)},
		{Name: "sqlite", Loader: store},
		{Name: "kafka", Loader: writer},
	}
	p := pipeline.New(resolver, registry, sinks, logger, metrics, pipeline.Options{StartYear: 2023, EndYear: 2024, Workers: 2})

	table, err := p.Run(ctx)
	require.NoError(t, err)

	wantRows := 2 * (365 + 366)
	require.Len(t, table.Rows, wantRows)
	assert.Equal(t, domain.StationID("FULL"), table.Rows[0].StationID)
	assert.Equal(t, domain.StationID("OVR"), table.Rows[365].StationID)
	for _, row := range table.Rows {
		require.NotNil(t, row.Tavg)
		assert.InDelta(t, 32.0, *row.Tavg, 1e-9)
		assert.InDelta(t, 23.0, *row.Tmin, 1e-9)
	}

	// CSV: header plus one line per row.
	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, wantRows+1)
	assert.Equal(t, "date,station_id,Stadium,tavg,tmin,tmax,prcp,snow,wdir,wspd,wpgt,pres,tsun", lines[0])
	assert.Equal(t, "2023-01-01,FULL,Kauffman Stadium,32.0,23.0,41.0,0.3,,180.0,10.0,,1013.0,", lines[1])

	// SQLite: latest run only.
	n, err := store.CountRows(ctx, "Oracle Park")
	require.NoError(t, err)
	assert.Equal(t, 365+366, n)
	ids, err := store.RunIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{table.RunID}, ids)

	// Kafka: first message matches the first row.
	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
	defer readCancel()
	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from sink topic")

	assert.Equal(t, "FULL|2023-01-01", string(msg.Key))
	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, table.RunID, headers["run_id"])
	assert.Equal(t, "Kauffman Stadium", headers["stadium"])
	_, err = time.Parse(time.RFC3339, headers["exported_at"])
	assert.NoError(t, err, "exported_at should be valid RFC3339")

	var body map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &body))
	assert.Equal(t, "2023-01-01", body["date"])
	assert.InDelta(t, 32.0, body["tavg"], 1e-9)
	assert.Nil(t, body["snow"])

	st := p.Status()
	assert.Equal(t, pipeline.StateComplete, st.State)
	assert.Equal(t, 4, st.PairsDone)
}
