package fieldops

import "github.com/fieldops-hq/fieldops/id"

// ID is the primary identifier type for all fieldops entities.
type ID = id.ID

// Prefix identifies the entity type encoded in a TypeID.
type Prefix = id.Prefix
