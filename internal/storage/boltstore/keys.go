package boltstore

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
)

var (
	bucketVariables = []byte("variables")
	bucketAccounts  = []byte("accounts")
)

const sep = "\x00"

// scopePrefix returns the key prefix shared by every variable of a user in a room.
func scopePrefix(roomID, userID string) []byte {
	return []byte(roomID + sep + userID + sep)
}

func variableKey(roomID, userID, name string) []byte {
	return append(scopePrefix(roomID, userID), name...)
}

// checkIDs rejects identifiers that would make keys ambiguous.
func checkIDs(ids ...string) error {
	for _, id := range ids {
		if strings.Contains(id, sep) {
			return fmt.Errorf("boltstore: identifier %q contains a NUL byte", id)
		}
	}
	return nil
}

func encodeValue(v int32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(v))
	return b
}

func decodeValue(b []byte) (int32, error) {
	if len(b) != 4 {
		return 0, fmt.Errorf("boltstore: corrupt variable value of %d bytes", len(b))
	}
	return int32(binary.BigEndian.Uint32(b)), nil
}

func hasPrefix(k, prefix []byte) bool {
	return bytes.HasPrefix(k, prefix)
}
