// Package dag maintains a directed graph of string-keyed nodes and derives
// the two facts the rest of the toolkit needs from it: whether the graph is
// acyclic, and a layered topological ordering of its nodes.
package dag
