/*
Package links lists and creates network interfaces inside network namespaces
referenced by [netnspin.Handle]s, using RTNETLINK.

Please note that this package deliberately doesn't connect different network
namespaces using VETH pairs or other virtual network interfaces.
*/
package links
