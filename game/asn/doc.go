// Package asn holds the shipment tasks (advanced shipping notices) drivers
// receive at the gate.
//
// A Catalog is an ordered list of ASNs keyed by asn number. A Dispenser walks
// the catalog handing out each ASN at most once until it is released again,
// which is how automatic truck dispatch avoids sending the same container twice.
//
// Usage:
//
//	d := asn.NewDispenser(asn.Builtin())
//	next, err := d.Next()
//	if errors.Is(err, asn.ErrExhausted) {
//		// every shipment is already in the yard
//	}
package asn
