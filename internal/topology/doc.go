// Package topology builds the fixed neighbour graph a spin system lives on.
//
// Nodes are scattered uniformly in a cube and each one is linked to its k
// spatially nearest neighbours:
//
//   - [Build]: brute-force search, O(N² log N)
//   - [BuildIndexed]: the same query answered by a k-d tree
//
// Both return a [Graph], an undirected simple graph whose edges are stored
// canonically with the lower index first. Positions matter only for
// construction; the simulation sees nothing but adjacency.
package topology
