package configdef

var HasOutputExtension = hasOutputExtension
