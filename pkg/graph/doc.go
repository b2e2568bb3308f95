// Package graph provides the serialization format of a workspace's package
// graph.
//
// [Build] turns packages into a [Graph]: nodes in workspace order, local
// dependency edges, the run batch ("row") of every package and the members
// of each collapsed cycle. The same value backs `graph --format json`,
// `ls --graph` (via [Graph.Adjacency]) and the DOT renderer in
// render/nodelink.
//
//	{
//	  "nodes": [
//	    {"id": "@acme/util", "version": "1.0.0", "row": 0},
//	    {"id": "@acme/core", "version": "1.0.0", "row": 1}
//	  ],
//	  "edges": [{"from": "@acme/core", "to": "@acme/util"}]
//	}
package graph
