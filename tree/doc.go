/*
Package tree is the topology index of an adaptive mesh: a fixed capacity
2^d-tree (binary, quad or oct tree) whose leaves are the cells of the mesh.
It knows nothing about coordinates in space. Geometry and solvers live
elsewhere and refer to cells by node id.

Jargon:

	Node          - a cell. Node 0 is the root, the whole domain.
	Sibling group - the 2^d nodes made by refining one node. They are
	                allocated and freed together.
	Level         - distance to the root.
	Location      - the child positions from the root down to a node.
	Manifold      - the kind of boundary two cells share: a face, an edge
	                or a corner.

Arena:

The tree is two flat arrays. Node ids are handed out one sibling group at a
time, so group s always owns the same ids:

	group   0   1             2             3
	nodes   0   1  2  3  4    5  6  7  8    9 10 11 12

A node only stores the id of its first child. A group stores the id of its
parent. Refining the root and then node 2 of a quad tree with capacity 13:

	        00
	|-----|-----|-----\
	01    02    03    04
	      |-----|-----|-----\
	      05    06    07    08

	parents        = {-, 0, 2, -}
	first_children = {1, -, 5, -, -, -, -, -, -, -, -, -, -}

Coarsening a node puts its children's group on a free list and the next
refine takes it from there before using a new group. Ids of other nodes
never change, so after a while the arena has holes and groups sit in any
order. DFSSort puts them back in depth first order, closing the holes.

Capacity never grows. A refine past the end of the arena is a sizing bug in
the caller and panics, like every other broken precondition.

Locations:

A location is a Morton code, see Loc. Finding the neighbor of a node is
shifting its location by an offset and walking the result down from the
root: the walk stops early at a coarser leaf.

	+----+----+---------+
	| 07 | 08 |         |
	+----+----+   04    |
	| 05 | 06 |         |
	+----+----+---------+
	|         |         |
	|   01    |   02    |
	|         |         |
	+---------+---------+

With x to the right and y up, refining 03 instead of 02 puts 05 to 08 in
the top left quadrant. The +x face neighbor of 06 is 04 one level up, and
the -x face neighbors of 04 are 06 and 08.

Persistence:

A tree goes to and from a session.File as two constants and the two arrays,
see ToFile and FromFile.
*/
package tree
