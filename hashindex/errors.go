package hashindex

import "github.com/pkg/errors"

var errLocalDepthExceedsGlobal = errors.New("hashindex: local depth exceeds global depth")
var errInconsistentLocalDepth = errors.New("hashindex: bucket shared by entries with different local depths")
var errBucketPointerCountMismatch = errors.New("hashindex: bucket does not have 2^(global-local) pointers")

var ErrBucketFull = errors.New("hashindex: bucket has no free slot")
var ErrDuplicateEntry = errors.New("hashindex: exact key/value pair already present")
var ErrMaxDepthReached = errors.New("hashindex: bucket local depth already at the configured maximum")
var ErrKeyTooLong = errors.New("hashindex: key exceeds the index's fixed key width")
