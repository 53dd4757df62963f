// Package configure turns a freshly bootstrapped cluster into a working
// genomics environment: HDFS home, YARN limits sized to the instances, JDK 8,
// build toolchain, the genomics packages and the eggo environment variables.
//
// Every step runs against the master except the JDK upgrade, which fans out
// to every host running a cluster-manager agent.
package configure
