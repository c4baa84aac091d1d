package codebench

const Version = "v0.3.1"
