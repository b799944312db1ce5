// Package render draws the map images that make up the flashcards.
//
// All images of one deck share the same pixel dimensions and extent so
// transparent overlays can be stacked over the basemap in the viewer.
// The extent is mapped equirectangularly, with the aspect ratio
// corrected by the cosine of the central latitude - see PixelDims.
//
// # Layers
//
// The opaque basemap is built from three cached layers (hillshade,
// lakes, rivers) composited by BuildBasemap. On top of it the deck
// uses transparent overlays:
//
//   - RenderPartition: every group colored by division, with ID labels
//   - RenderGroupFront: packed question marks inside one group
//   - RenderGroupBack: one group outlined, siblings dimmed
//   - RenderContext: country borders and city labels
//   - RenderAllPOIs / RenderPOIHighlight: point-of-interest decks
//
// Overlays are returned as images; callers decide names and formats.
//
// # Example
//
//	w, h := render.PixelDims(region.BBox, 7680, 4320)
//	shapes := render.NewGroupShapes(cls, fc)
//	img, err := render.RenderGroupBack(cls, shapes, group.OSMRef, region.BBox, w, h)
//	if err != nil {
//		return err
//	}
//	err = render.SaveImage(path, img, 90)
package render
