package transport

import (
	"fmt"
	"net"
	"sync/atomic"
)

var inboundSeq atomic.Uint64

// InboundPeerID names an accepted session by kind, remote address and a
// process-unique sequence number. Named pipe sessions share one address.
func InboundPeerID(kind Kind, addr net.Addr) PeerID {
	where := "unknown"
	if addr != nil {
		where = addr.String()
	}
	return PeerID(fmt.Sprintf("ui:%s:%s#%d", kind, where, inboundSeq.Add(1)))
}
