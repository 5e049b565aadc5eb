package timezone

import "time"

var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("America/New_York")
	if err != nil {
		panic(err)
	}
}

// Offer save timestamps are compared across runs, so pin them to one
// timezone regardless of where the process happens to be deployed.
func Now() time.Time {
	return time.Now().In(Location)
}
