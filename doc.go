// Package vaschooldata normalizes Virginia school enrollment and graduation
// exports into a stable, analysis-ready schema spanning multiple decades of
// incompatible source formats.
//
// The agency republishes its enrollment and cohort-graduation tables every
// year, renaming and reordering columns as its systems change. This package
// detects which historical schema era produced an export, maps its columns
// onto a fixed canonical vocabulary, parses locale-specific values
// (suppression markers, thousands separators, percent renderings), rolls
// school-level records up to district and state totals, and reshapes wide
// tables into tidy format. A staleness-aware file cache sits in front of the
// expensive download-and-normalize path.
//
// Typical use:
//
//	client, err := vaschooldata.NewClient(nil, nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	enr, err := client.FetchEnrollment(ctx, 2019, false)
//	if err != nil {
//		log.Fatal(err)
//	}
//	long := client.Tidy(enr)
//
// Malformed or suppressed cells degrade to explicit missing values and never
// abort a run; only structural problems (an unrecognized source schema, a
// year outside the supported range) surface as errors.
package vaschooldata
