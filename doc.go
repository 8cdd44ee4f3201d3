package jspec

// Package jspec provides:
//
// - Immutable specs (package spec) describing the shape of JSON documents
// - Fail-fast parsing that validates while tokens arrive (Parse/ParseBytes/ParseReader)
// - Exhaustive post-hoc validation of in-memory values (Test/Validate/Conform)
// - Lossless numbers: every literal lands in the representation its spec asks for
// - A stable error model (JSON Pointer path, code, offending value, message)
// - Duplicate-key/depth/size enforcement on the token stream
//
// Design policy:
// - Keep only public APIs in the root package; put the tokenizer and enforcement under internal/.
// - Place the value model under value/, number conversion under number/, and the CLI under cmd/jspec.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//  s := spec.Object(spec.Req("id", spec.Int64()), spec.Opt("tags", spec.ArrayOf(spec.String())))
//  v, err := jspec.ParseBytes(ctx, s, data)
//  errs := jspec.Test(ctx, s, v)
//
