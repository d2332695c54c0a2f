package cache

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
)

// Kind names one cacheable resource family. The set is closed: every read
// registers tags derived from these kinds and every write invalidates them.
type Kind string

const (
	KindProducts      Kind = "products"
	KindProductViews  Kind = "productViews"
	KindSubscription  Kind = "subscription"
	KindCountries     Kind = "countries"
	KindCountryGroups Kind = "countryGroups"
)

// Tag identifies one invalidation scope. Values are opaque to callers;
// construct them through GlobalTag, UserTag and IDTag only.
type Tag string

// WildcardTag is registered with every entry. Invalidating it flushes the
// whole cache.
const WildcardTag Tag = "*"

// GlobalTag scopes a kind across all tenants.
func GlobalTag(kind Kind) Tag {
	return Tag("global:" + string(kind))
}

// UserTag scopes a kind to one owner. Kinds never contain the separator,
// so distinct (owner, kind) pairs cannot collide even when owner ids do
// contain it.
func UserTag(ownerID string, kind Kind) Tag {
	return Tag(fmt.Sprintf("user:%s:%s", ownerID, kind))
}

// IDTag scopes a kind to a single entity row.
func IDTag(id snowflake.ID, kind Kind) Tag {
	return Tag(fmt.Sprintf("id:%s:%s", id, kind))
}
