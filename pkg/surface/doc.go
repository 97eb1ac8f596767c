/*
Package surface implements the fixed-size raster board that every input is drawn onto.

A Surface owns a 900x600 opaque RGBA buffer initialised to a dark background with a 30-unit
grid. Strokes are painted segment by segment with round caps and joins; erase strokes are
destructive and reveal the background and grid underneath. Images (uploads and camera frames)
are composited through Fit, the single scale-and-center policy of the board.

A Surface is not safe for concurrent use. The board package serialises access to it.
*/
package surface
