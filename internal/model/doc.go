// Package model defines the core data structures used throughout
// the alpdeck pipeline.
//
// # Reference data
//
// Region, Classification, MountainGroup, POIClassification and POI are
// immutable reference data loaded from the embedded catalog:
//
//	region := catalog.Region("ostalpen")
//	cls := catalog.Classification("ostalpen", "ave84")
//
// # Decks
//
// Deck and POIDeck pair a region with a classification and own the
// filename scheme for everything the pair produces:
//
//	deck := &model.Deck{Region: region, Classification: cls}
//	deck.BasemapName()        // "ps_ostalpen_ave84_basemap.jpg"
//	deck.GroupFrontName("3b") // "ps_ostalpen_ave84_group_3b_front.png"
//
// # Valid combinations
//
// Not every region builds every system. ValidCombinations holds the
// buildable pairs, RegionDefaults the system used when none is given,
// and SubdeckMerge the systems that ship together in one archive.
package model
