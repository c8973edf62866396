/*
package tablequery is a pure-go implementation of the grouped row count, run over an in-memory table.

Fill in the `*GroupCountQuery` object, and call `Run`.

It gives the same answer as the store's grouped count: one pair per distinct key (nulls form their own group),
ordered by key with nulls first, cut to `Limit` pairs. Because stores differ on where they sort nulls,
`VerifyGroupCounts` checks a store's answer by key rather than by position.
*/
package tablequery
