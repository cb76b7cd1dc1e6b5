package reference

import "github.com/damon-houk/fx-monitor/internal/domain/entity"

func usd(quote entity.CurrencyCode) entity.CurrencyPair {
	return entity.CurrencyPair{Base: entity.USD, Quote: quote}
}

// FredSeriesMapping maps USD-based pairs to the FRED daily H.10 series.
// Series quoted as USD per foreign unit (DEXUSxx) are flagged Invert.
var FredSeriesMapping = map[entity.CurrencyPair]entity.FredSeries{
	usd("EUR"): {SeriesID: "DEXUSEU", Invert: true},
	usd("GBP"): {SeriesID: "DEXUSUK", Invert: true},
	usd("AUD"): {SeriesID: "DEXUSAL", Invert: true},
	usd("NZD"): {SeriesID: "DEXUSNZ", Invert: true},
	usd("JPY"): {SeriesID: "DEXJPUS"},
	usd("CAD"): {SeriesID: "DEXCAUS"},
	usd("CHF"): {SeriesID: "DEXSZUS"},
	usd("CNY"): {SeriesID: "DEXCHUS"},
	usd("INR"): {SeriesID: "DEXINUS"},
	usd("MXN"): {SeriesID: "DEXMXUS"},
	usd("BRL"): {SeriesID: "DEXBZUS"},
	usd("KRW"): {SeriesID: "DEXKOUS"},
	usd("SEK"): {SeriesID: "DEXSDUS"},
	usd("NOK"): {SeriesID: "DEXNOUS"},
	usd("DKK"): {SeriesID: "DEXDNUS"},
	usd("SGD"): {SeriesID: "DEXSIUS"},
	usd("HKD"): {SeriesID: "DEXHKUS"},
	usd("ZAR"): {SeriesID: "DEXSFUS"},
	usd("THB"): {SeriesID: "DEXTHUS"},
}

// LookupFredSeries finds the series for pair. mirrored is true when only the
// swapped pair is mapped, in which case the delivered rate must be inverted once more.
func LookupFredSeries(mapping map[entity.CurrencyPair]entity.FredSeries, pair entity.CurrencyPair) (series entity.FredSeries, mirrored bool, ok bool) {
	if s, found := mapping[pair]; found {
		return s, false, true
	}
	if s, found := mapping[pair.Inverse()]; found {
		return s, true, true
	}
	return entity.FredSeries{}, false, false
}
