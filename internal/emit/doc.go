// Package emit renders a validated NodeSet as Go source text. Emission
// is a pure function of the IR: no timestamps, no environment, no map
// iteration order. The emitted file is self-contained; it carries its
// own runtime types so generated packages have no import on this module.
package emit
