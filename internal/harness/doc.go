// Package harness runs fixture scenarios against the store.
//
// A scenario loads a CUE schema, bulk-loads static tables through the
// facade, applies actions through the reducer against a host state, and
// then checks assertions on the resulting rows and resolved graphs.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: author-books
//	description: "Authors gain books through back-references"
//	schema: ../library.cue       # relative to the scenario file
//	depth: 2                     # optional default depth
//	tables:
//	  - model: Author
//	    rows: [{name: Ann}]
//	actions:
//	  - type: ADD_MODEL
//	    model: Book
//	    data: {title: Dune, author: 0}
//	  - type: ADD_MODEL
//	    model: Author
//	    data: {name: Bo, books: [9]}
//	    expect_error: BACKREF_TARGET_MISSING
//	assertions:
//	  - type: resolve
//	    source: store
//	    model: Author
//	    id: 0
//	    depth: 1
//	    expect: {name: Ann}
//	  - type: row_count
//	    model: Book
//	    count: 1
//	  - type: absent
//	    model: Book
//	    id: 3
//
// # Assertion Types
//
//   - resolve: resolves model/id (or every row when id is omitted) and
//     subset-matches the result against expect
//   - row_count: checks the number of rows in a table
//   - absent: checks that no row is stored under id
//
// Every assertion reads either the host state built by the actions
// (source: store, the default) or the facade's static tables
// (source: static).
//
// # Deterministic Testing
//
// Models declaring id_strategy "uuid" get ids from a
// testutil.PrefixedGenerator seeded with the scenario's id_prefix (or its
// name), so repeated runs produce identical state and golden files.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/author_books.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness
