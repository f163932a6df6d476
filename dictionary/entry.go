// Package dictionary mines the recent-compares tables in torc into
// mutation hints: values (and sometimes byte offsets) a mutator can try
// splicing into an input to push a comparison the other way.
package dictionary

import "github.com/covfeedback/core/torc"

// Entry is a mutation hint: a value to try, optionally anchored to a byte
// offset in the input that suggested it. Shared verbatim with torc, since
// both a raw table match and a mined dictionary entry are the same shape.
type Entry = torc.Entry
