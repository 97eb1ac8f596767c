/*
Package domain contains the core domain models shared by the Lousa board, checker and relay.

It defines the fixed board geometry, the colour palette, strokes and the sentinel errors used
across adapters. This package is kept pure and free of external dependencies like I/O or
persistence, following Hexagonal Architecture principles.

# Key Entities

  - Point: A coordinate in board (logical) space.
  - Stroke: An ordered path plus pen width and Mode (ink or erase).
  - Mode: Selects compositing behaviour for a stroke.
*/
package domain
