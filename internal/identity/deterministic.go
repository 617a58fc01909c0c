package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions (prefix by domain/type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// EntryUUID identifies an index entry by its canonical URL.
func EntryUUID(canonicalURL string) uuid.UUID {
	return UUID("go-blog:entry:" + strings.TrimSpace(canonicalURL))
}

// FeedUUID identifies a site feed by its canonical origin.
func FeedUUID(origin string) uuid.UUID {
	return UUID("go-blog:feed:" + strings.TrimRight(strings.TrimSpace(origin), "/"))
}

// URN formats id as a urn:uuid value suitable for feed GUIDs and Atom ids.
func URN(id uuid.UUID) string {
	return id.URN()
}
