// Package catalog loads the embedded reference tables: regions,
// classification systems and points of interest.
//
// All tables are TOML files compiled into the binary, so a checkout
// needs no data directory to know what it can build:
//
//	region, err := catalog.Region("ostalpen")
//	cls, err := catalog.Classification("ostalpen", "ave84")
//	pois, err := catalog.POIs()
//
// Tables are decoded once on first access and shared afterwards; the
// returned values are treated as immutable by every caller.
package catalog
