package usecase

import "errors"

var (
	// ErrInvalidInterval は未対応の時間足が指定されたことを示します。
	ErrInvalidInterval = errors.New("invalid interval")
	// ErrSymbolNotFound は取引所が銘柄を認識しなかったことを示します。
	ErrSymbolNotFound = errors.New("symbol not found")
)
