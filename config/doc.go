// Package config loads application settings for the grag command line.
//
// Settings come from, in increasing precedence: built-in defaults, an
// optional YAML file, a .env file and the process environment. Environment
// variables use the GRAG_ prefix with dots replaced by underscores, so
// retrieval.seed_top_k is read from GRAG_RETRIEVAL_SEED_TOP_K. The legacy
// variables DATABASE_PATH, EMBEDDING_MODEL and EMBEDDING_HOST are honoured
// when their GRAG_ counterparts are unset.
package config
