package bonding

import "github.com/xraph/bonding/id"

// ID identifies receipts and audit records.
type ID = id.ID

// Prefix identifies the record type encoded in a TypeID.
type Prefix = id.Prefix
