package utils

import (
	"strings"
	"sync"

	uuid "github.com/satori/go.uuid"
	"github.com/segmentio/ksuid"
)

func UUID() string {
	return uuid.NewV4().String()
}

func UUIDShort() string {
	return strings.ReplaceAll(UUID(), "-", "")
}

func IsValidUUID(id string) bool {
	_, err := uuid.FromString(id)
	return err == nil
}

var (
	ksuidMux  sync.Mutex
	lastKSUID ksuid.KSUID
)

// KSUID returns a new KSUID. Ids generated by one process sort in
// generation order, even within the same second.
func KSUID() string {
	id := ksuid.New()
	ksuidMux.Lock()
	if ksuid.Compare(id, lastKSUID) <= 0 {
		id = lastKSUID.Next()
	}
	lastKSUID = id
	ksuidMux.Unlock()
	return id.String()
}

func IsValidKSUID(id string) bool {
	_, err := ksuid.Parse(id)
	return err == nil
}
