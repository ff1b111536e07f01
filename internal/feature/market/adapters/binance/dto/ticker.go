package dto

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Ticker24hr は /ticker/24hr のレスポンスのうち利用するフィールドです。
// 数値はBinanceの表現どおり文字列のまま保持します。
type Ticker24hr struct {
	Symbol             string `json:"symbol" validate:"required"`
	LastPrice          string `json:"lastPrice" validate:"required,decimal"`
	PriceChangePercent string `json:"priceChangePercent" validate:"required,decimal"`
	Volume             string `json:"volume" validate:"required,decimal"`
	QuoteVolume        string `json:"quoteVolume" validate:"required,decimal"`
}

var validate = newValidator()

// newValidator は "decimal" タグ（shopspring/decimal で解釈できる文字列）を登録し、
// エラーのフィールド名をJSON名で返すバリデーターを作成します。
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("decimal", func(fl validator.FieldLevel) bool {
		_, err := decimal.NewFromString(fl.Field().String())
		return err == nil
	}); err != nil {
		panic(err)
	}
	return v
}

// Validate はsymbolが空でないこと、数値フィールドが数値として解釈できることを検証します。
func (t Ticker24hr) Validate() error {
	err := validate.Struct(t)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) || len(ves) == 0 {
		return fmt.Errorf("ticker: %w", err)
	}
	fe := ves[0]
	switch {
	case fe.Field() == "symbol":
		return errors.New("ticker: missing symbol")
	case fe.Tag() == "required":
		return fmt.Errorf("ticker %s: missing %s", t.Symbol, fe.Field())
	default:
		return fmt.Errorf("ticker %s: %s %q: not a decimal", t.Symbol, fe.Field(), fe.Value())
	}
}

// ErrorResponse はBinanceがエラー時に返すボディです。
type ErrorResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}
