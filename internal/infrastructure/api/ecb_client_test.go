package api

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/damon-houk/fx-monitor/internal/domain/entity"
	"github.com/damon-houk/fx-monitor/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ecbDailyFixture = `<?xml version="1.0" encoding="UTF-8"?>
<gesmes:Envelope xmlns:gesmes="http://www.gesmes.org/xml/2002-08-01" xmlns="http://www.ecb.int/vocabulary/2002-08-01/eurofxref">
	<gesmes:subject>Reference rates</gesmes:subject>
	<gesmes:Sender>
		<gesmes:name>European Central Bank</gesmes:name>
	</gesmes:Sender>
	<Cube>
		<Cube time="2025-01-14">
			<Cube currency="USD" rate="1.0250"/>
			<Cube currency="JPY" rate="161.50"/>
			<Cube currency="GBP" rate="0.8400"/>
		</Cube>
	</Cube>
</gesmes:Envelope>`

func TestParseECBDaily(t *testing.T) {
	table, err := ParseECBDaily([]byte(ecbDailyFixture))
	require.NoError(t, err)

	assert.Equal(t, "2025-01-14", table.Date.Format(entity.DateLayout))
	assert.Equal(t, 1.0, table.Rates[entity.EUR])
	assert.Equal(t, 1.0250, table.Rates["USD"])
	assert.Len(t, table.Rates, 4)
}

func TestParseECBDailyInvalid(t *testing.T) {
	_, err := ParseECBDaily([]byte("<html>maintenance</html>"))
	assert.Error(t, err)

	_, err = ParseECBDaily([]byte(`<gesmes:Envelope xmlns:gesmes="x"><Cube></Cube></gesmes:Envelope>`))
	assert.Error(t, err)
}

func TestECBTableResolve(t *testing.T) {
	table, err := ParseECBDaily([]byte(ecbDailyFixture))
	require.NoError(t, err)

	tests := []struct {
		name  string
		pair  entity.CurrencyPair
		want  float64
		found bool
	}{
		{"base is EUR", entity.NewCurrencyPair("EUR", "USD"), 1.0250, true},
		{"quote is EUR", entity.NewCurrencyPair("USD", "EUR"), 1 / 1.0250, true},
		{"cross through EUR", entity.NewCurrencyPair("USD", "JPY"), 161.50 / 1.0250, true},
		{"unknown quote", entity.NewCurrencyPair("EUR", "XYZ"), 0, false},
		{"unknown base in cross", entity.NewCurrencyPair("XYZ", "USD"), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rate, ok := table.Resolve(tt.pair)
			assert.Equal(t, tt.found, ok)
			assert.InDelta(t, tt.want, rate, 1e-12)
		})
	}
}

func TestECBTableCrossRateIsReciprocal(t *testing.T) {
	table, err := ParseECBDaily([]byte(ecbDailyFixture))
	require.NoError(t, err)

	pairs := []entity.CurrencyPair{
		entity.NewCurrencyPair("USD", "JPY"),
		entity.NewCurrencyPair("GBP", "USD"),
		entity.NewCurrencyPair("EUR", "GBP"),
	}
	for _, p := range pairs {
		forward, ok := table.Resolve(p)
		require.True(t, ok)
		backward, ok := table.Resolve(p.Inverse())
		require.True(t, ok)
		assert.InDelta(t, 1.0, forward*backward, 1e-12, p.String())
	}
}

func TestECBClientCachesTable(t *testing.T) {
	server, hits := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		w.Write([]byte(ecbDailyFixture))
	})

	clock := cache.NewManualClock(testNow)
	client := NewECBClient(testOptions(server.URL, clock)...)

	quote, ok := client.FetchRate(context.Background(), entity.NewCurrencyPair("EUR", "USD"))
	require.True(t, ok)
	assert.Equal(t, ECBSourceName, quote.Source)
	assert.Equal(t, "2025-01-14", quote.Date.Format(entity.DateLayout))

	// A different pair is answered from the same cached table
	_, ok = client.FetchRate(context.Background(), entity.NewCurrencyPair("GBP", "JPY"))
	require.True(t, ok)
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))

	clock.Advance(time.Hour)
	_, ok = client.FetchRate(context.Background(), entity.NewCurrencyPair("EUR", "USD"))
	require.True(t, ok)
	assert.Equal(t, int32(2), atomic.LoadInt32(hits))
}

func TestECBClientUnavailable(t *testing.T) {
	server, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	client := NewECBClient(testOptions(server.URL, cache.NewManualClock(testNow))...)

	_, ok := client.FetchRate(context.Background(), entity.NewCurrencyPair("EUR", "USD"))
	assert.False(t, ok)
}
