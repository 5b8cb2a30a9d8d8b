package domain

import (
	"strconv"
	"time"
)

// Driver is a capability flag for an identity: only registered drivers may
// move an order past OrderStatusNew.
type Driver struct {
	ID      int64
	Name    string
	AddedAt time.Time
}

// DefaultDriverName is the display name given to a driver registered by an
// operator without a name.
func DefaultDriverName(id int64) string {
	return "driver_" + strconv.FormatInt(id, 10)
}
