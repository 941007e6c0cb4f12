package wire

import "github.com/51Degrees/ip-intelligence-go/pkg/ipierr"

func newCorrupt(msg string) error {
	return ipierr.New(ipierr.CorruptData, msg)
}
