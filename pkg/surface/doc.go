// Package surface provides swarm.Surface implementations: an in-memory draw
// call recorder, a no-op sink, a gg-backed RGBA raster with PNG export and a
// tcell terminal canvas.
package surface
