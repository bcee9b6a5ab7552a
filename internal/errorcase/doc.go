// Package errorcase selects the queries a retrieval experiment got wrong and
// rebuilds, for each of them, the record needed to explain the miss: the
// ground-truth phrase, where it ranked, its DTW score, and what was retrieved
// first instead.
//
// Selection is a pure function of the loaded rankings. Record building reads
// one per-query candidate table per error case and may run on several
// workers, but results and errors are always reported in ranking order so two
// runs over the same inputs produce identical output. Every inconsistency
// between rankings, tables, and pitch data aborts the run with a *CaseError
// naming the query and file involved.
package errorcase
