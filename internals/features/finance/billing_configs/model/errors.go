package model

import "errors"

var (
	ErrConfigMissing = errors.New("billing config belum diset")
	ErrConfigInvalid = errors.New("billing config tidak valid")
)
