// Package buildvars is filled through -ldflags "-X ...".
package buildvars

import (
	"strconv"
	"time"
)

var (
	GitCommit       string
	Version         string
	BuildDateString string
	BuildDate       *time.Time
)

func init() {
	unixTS, err := strconv.ParseInt(BuildDateString, 10, 64)
	if err == nil {
		buildDate := time.Unix(unixTS, 0)
		BuildDate = &buildDate
	}
}
