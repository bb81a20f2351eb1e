// Package vector implements the state vector: a mapping from participant id
// to the number of buffer-affecting requests by that participant that have
// been applied, plus the partial order and lattice operations the
// transformation engine needs.
//
// Concepts & terminology:
// ------------------------
//   - "causally before": a <= b iff every component of a is <= the
//     corresponding component of b. This is a partial order, not total:
//     two vectors may be mutually incomparable.
//   - "concurrent": neither a <= b nor b <= a. Concurrent requests are the
//     ones the operation algebra's transform functions must reconcile.
//   - "lcs" (least common successor): the component-wise max of two
//     vectors, i.e. the smallest vector causally after both.
//   - "lcp" (least common predecessor): the component-wise min, i.e. the
//     largest vector causally before both.
//   - "vdiff": the L1 distance between two comparable vectors, i.e. the
//     number of requests separating them. Used to bound undo reach and to
//     drive translation's termination argument (vdiff strictly decreases
//     with every fold or transform step).
//
// Vectors are sparse: a participant absent from the map is treated as
// having a count of zero, so newly joined participants don't require
// rewriting every existing vector.
package vector
