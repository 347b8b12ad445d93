// Package gazetteer imports GeoNames reference places into the catalog and
// resolves GPS coordinates to the nearest named place.
//
// Two index backends answer candidate queries: an in-memory R-tree built
// from every stored place, and a SQLite bounding-box query against the
// places table. Both feed the same haversine nearest-match selection, so
// they return identical results.
package gazetteer
