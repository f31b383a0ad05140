package main

type sessionKey string

const currentGameIDSessionKey = sessionKey("currentGameID")
