/*
Package board is the single writer of a drawing board.

A Board ties one surface.Surface, one history.Manager and one input.Normalizer together
behind a mutex. Every mutation of the raster goes through it, and it records a snapshot
after each completed stroke, composite and clear.

Image decoding runs asynchronously. Upload and Capture return a Task that completes once;
each Task carries a generation number and a completion that is older than the last
applied composite is discarded with domain.ErrStaleLoad.

Manager keeps the boards of a running server, keyed by UUID.
*/
package board
