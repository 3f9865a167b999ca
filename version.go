package metaextractor

// Version is the tool version; the datamimic package embeds it in every
// generated model.
const Version = "0.1.0"
