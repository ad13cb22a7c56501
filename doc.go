/*
Package persistent provides fully persistent containers — an indexed
sequence, a doubly-linked list, and an ordered map — together with a
transaction coordinator for atomic multi-container updates.

Every mutation of a container produces a new version; earlier versions
stay reachable and immutable, and Undo/Redo move a read cursor along the
version chain.  Mutating after an Undo discards the undone versions and
starts a fresh branch, like an editor's undo history.  The version count
reported by LastVersion includes the initial empty version.

Uses

- Cheap historical snapshots of evolving state

- Undo/redo user interfaces

- Speculative computation with rollback


Representation

Array and Map are pure path-copying structures: a mutation clones only
the nodes on the spine from the root to the point of change and shares
every other subtree with earlier versions, giving O(log n) expected work
per update.  Array fixes its tree shape at construction by inserting a
random permutation of the indices; Map is a treap whose random
priorities keep the expected height logarithmic.

List uses fat nodes: each cell stores up to two versioned snapshots of
itself in place, escalating to path-copying of neighbouring cells only
when its snapshots are saturated.  Most list updates are therefore
amortized O(1).  An invalidator journals every in-place fill so that
discarding history can erase them.

Transactions

A Transaction snapshots the version counters of its containers on entry
and rewinds them on failure:

	tx := persistent.NewTransaction(accounts, journal)
	defer tx.Release()
	tx.Run(func() error {
		...
	})

If the action returns an error or panics, Release rolls every
registered container back to the version it had when it was registered
and discards the versions the failed action produced.

None of the containers are safe for concurrent mutation from multiple
goroutines.
*/
package persistent
