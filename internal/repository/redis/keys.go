package redis

import (
	"fmt"
	"strings"
)

const ns = "busline:v1"

func KeyBuses() string {
	return ns + ":buses:all"
}

func KeyBusSeats(busID int64) string {
	return fmt.Sprintf("%s:bus:%d:seats", ns, busID)
}

func KeyBusSearch(source, destination string) string {
	return fmt.Sprintf("%s:search:%s:%s", ns, strings.ToLower(source), strings.ToLower(destination))
}

func KeyRateLimit(scope, id string) string {
	return fmt.Sprintf("%s:rl:%s:%s", ns, scope, id)
}

func ChannelBusesChanged() string {
	return ns + ":buses:changed"
}
