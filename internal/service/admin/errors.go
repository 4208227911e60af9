package admin

import "errors"

var (
	ErrBusConflict = errors.New("bus already exists")
	ErrInvalidBus  = errors.New("invalid bus definition")
)
