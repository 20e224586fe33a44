// Package compute submits distributed transformation jobs and waits for them
// to finish. Two backends exist: a local spark-submit process and a remote
// Apache Livy batch endpoint.
package compute
