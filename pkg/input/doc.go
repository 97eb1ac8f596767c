/*
Package input maps heterogeneous board inputs onto surface operations.

Three modalities are handled:

  - Pointer and touch events arrive in display space and are rescaled into the fixed
    900x600 board space using the ratio of board size to the element's rendered size.
  - Uploaded files are decoded (PNG, JPEG, GIF, BMP, WebP) into an image.
  - Camera frames are captured at native resolution, round-tripped through PNG and
    decoded again, so they reach the surface through the same composite path as uploads.
*/
package input
