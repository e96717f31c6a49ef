// Package confly implements the statistical-disclosure-control aggregation
// engine: microdata ingest, marginal expansion over a hypercube, three noise
// schemes (Cell-Key, Laplace DP, Geometric DP), and a traversing store that
// reduces many independently-seeded cube replicas into one time series per
// coordinate.
//
// # Reading Guide
//
// Start with these files to understand the aggregation kernel:
//   - types.go: Schema, Value, total codes (the tuple-parameterised data model)
//   - tuple.go: schema-driven read/write/mask operations on a Tuple
//   - hypercube.go: marginal expansion and the cube's (flattened) cell map
//   - driver.go: the Aggregate entry point tying everything together
//
// Distribution across remote workers lives in confly/cluster.
package confly
