// Package settings discovers and classifies the per-character and per-account
// settings files stored in a game settings directory.
//
// A settings directory holds one opaque file per character and per account,
// plus one template file of each kind that the game applies to characters or
// accounts it has not seen before:
//
//	settings_Default/
//	├── core_char_90000001.dat   character 90000001
//	├── core_char__.dat          character template (default)
//	├── core_user_123456.dat     account 123456
//	└── core_user__.dat          account template (default)
//
// [Classify] lists a directory and returns a [File] for every entry that
// matches the grammar. Anything else is skipped without error, since these
// directories legitimately contain unrelated files.
package settings
