package topology

import "errors"

// ErrNilConstructor indicates a nil Constructor was passed to Build, the
// topology-package equivalent of lvlath/builder's nil-constructor guard in
// BuildGraph.
var ErrNilConstructor = errors.New("topology: nil constructor")

// ErrTooFewNodes indicates a constructor was asked to wire fewer leaves
// than its topology requires (e.g. Chain needs at least two).
var ErrTooFewNodes = errors.New("topology: too few nodes")
