package chromem

import "errors"

var errMissingEmbedding = errors.New("chromem: record has no embedding")
