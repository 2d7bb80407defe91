//go:build debug

package debug

import (
	"log"
	"os"
)

var debuglog = log.New(os.Stderr, "[D] ", log.LstdFlags)

func Log(msg interface{}) {
	debuglog.Output(1, getStringValue(msg))
}
