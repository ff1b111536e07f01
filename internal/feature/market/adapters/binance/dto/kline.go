// Package dto はBinance APIのレスポンス形式を定義します。
package dto

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// klineMinFields は1行のklineに必要な要素数です。
// [open_time, open, high, low, close, volume, close_time, ...]
const klineMinFields = 6

// Kline は /klines が返す配列1行分です。
type Kline struct {
	OpenTime int64 // ミリ秒
	Open     decimal.Decimal
	High     decimal.Decimal
	Low      decimal.Decimal
	Close    decimal.Decimal
	Volume   decimal.Decimal
}

// UnmarshalJSON は位置ベースの配列を型付きで解釈します。
// 要素数不足や数値として解釈できない値はエラーになります。
func (k *Kline) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("kline: %w", err)
	}
	if len(raw) < klineMinFields {
		return fmt.Errorf("kline: expected at least %d fields, got %d", klineMinFields, len(raw))
	}
	if err := json.Unmarshal(raw[0], &k.OpenTime); err != nil {
		return fmt.Errorf("kline open time %s: %w", raw[0], err)
	}

	fields := []struct {
		name string
		dst  *decimal.Decimal
	}{
		{"open", &k.Open},
		{"high", &k.High},
		{"low", &k.Low},
		{"close", &k.Close},
		{"volume", &k.Volume},
	}
	for i, f := range fields {
		v, err := parseDecimal(raw[i+1])
		if err != nil {
			return fmt.Errorf("kline %s: %w", f.name, err)
		}
		*f.dst = v
	}
	return nil
}

// parseDecimal はBinanceが文字列で返す数値を解釈します。
func parseDecimal(raw json.RawMessage) (decimal.Decimal, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return decimal.Zero, fmt.Errorf("expected numeric string, got %s", raw)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse %q: %w", s, err)
	}
	return d, nil
}
